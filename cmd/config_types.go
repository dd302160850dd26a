package cmd

// UploadFlags holds artifact-upload flags shared by commands.
type UploadFlags struct {
	Provider string
	Settings []string
}

// NotifyFlags holds completion-notification flags.
type NotifyFlags struct {
	NoNotify bool
}

// WorkflowFlags holds flags for the workflow command.
type WorkflowFlags struct {
	File  string
	Query string
}
