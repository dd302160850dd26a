package main

import "github.com/yangzhihuimee/difybatch/cmd"

func main() {
	cmd.Execute()
}
