package constants

// RecordStatus is the outcome of processing one document.
type RecordStatus string

// Stable values (stored as-is in the run store).
const (
	RecordStatusOK     RecordStatus = "OK"     // text, rules and OCR all completed
	RecordStatusFailed RecordStatus = "FAILED" // the document could not be fully processed
)

// FilenameColumn is the first column of every record and result table.
const FilenameColumn = "Arquivo"

const (
	// DefaultDPI is the rasterization resolution that layout coordinates refer to.
	DefaultDPI = 300
	// DefaultOCRLang is the tesseract language used for region recognition.
	DefaultOCRLang = "por"
	// DefaultOutputFile is the XLSX written by a batch run when no path is given.
	DefaultOutputFile = "resultado_ocr.xlsx"
)
