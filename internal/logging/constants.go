package logging

// Standardized field names for structured logging.
// Use these instead of ad-hoc keys so conversion runs can be filtered by source
// or stage in JSON output.
const (
	FieldFile       = "file_path"
	FieldSource     = "source"
	FieldContainer  = "container"
	FieldAttempt    = "attempt"
	FieldColumn     = "column"
	FieldRole       = "role"
	FieldRow        = "row"
	FieldRecordID   = "fitid"
	FieldReason     = "reason"
	FieldError      = "error"
	FieldCount      = "count"
	FieldDropped    = "dropped"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldFormat     = "format"
)
