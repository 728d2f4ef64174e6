package workflow

import "github.com/Vovarama1992/braille_bridge/internal/ports"

// Messages: user-facing texts of one page
type Messages struct {
	LoginFirst   string
	EnterText    string
	SelectFile   string
	FileTooLarge string

	UploadMalformedText string
	UploadMalformedFile string
	UploadFailed        string

	ConvertMalformed string
	ConvertFailed    string

	Cancelled string
	Fallback  string
}

var brailleMessages = Messages{
	LoginFirst:   "Please log in first.",
	EnterText:    "Please enter some text to convert",
	SelectFile:   "Please upload a file",
	FileTooLarge: "File size must be less than 10MB",

	UploadMalformedText: "Upload failed — invalid or empty response",
	UploadMalformedFile: "Upload failed — no JSON returned",
	UploadFailed:        "Upload failed",

	ConvertMalformed: "Conversion failed — invalid or empty response",
	ConvertFailed:    "Conversion failed",

	Cancelled: "Conversion cancelled.",
	Fallback:  "Conversion failed.",
}

var speechMessages = Messages{
	LoginFirst:   "Please log in first.",
	EnterText:    "Please enter some text to convert.",
	SelectFile:   "Please upload a file.",
	FileTooLarge: "File size must be less than 10MB",

	UploadMalformedText: "File upload returned invalid JSON.",
	UploadMalformedFile: "File upload returned invalid JSON.",
	UploadFailed:        "File upload failed.",

	ConvertMalformed: "Server did not return valid JSON.",
	ConvertFailed:    "Conversion failed.",

	Cancelled: "Conversion cancelled.",
	Fallback:  "Conversion failed.",
}

func MessagesFor(target ports.Target) Messages {
	if target == ports.TargetTTS {
		return speechMessages
	}
	return brailleMessages
}

func (m Messages) uploadMalformed(tab ports.Tab) string {
	if tab == ports.TabFile {
		return m.UploadMalformedFile
	}
	return m.UploadMalformedText
}
