package generator

// Mode selects the system instruction sent to the model.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)
