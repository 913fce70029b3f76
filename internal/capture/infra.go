package capture

import "os"

// SystemPlatform probes the local machine for capture backends.
type SystemPlatform struct {
	RecognizerSocket string
	Locale           string
	RecordCommand    []string
}

func (p SystemPlatform) Recognizer() (Backend, bool) {
	if p.RecognizerSocket == "" {
		return nil, false
	}
	info, err := os.Stat(p.RecognizerSocket)
	if err != nil || info.Mode()&os.ModeSocket == 0 {
		return nil, false
	}
	return NewDaemonRecognizer(p.RecognizerSocket, p.Locale), true
}

func (p SystemPlatform) Recorder() (Backend, bool) {
	r := NewCommandRecorder(p.RecordCommand)
	if !r.Available() {
		return nil, false
	}
	return r, true
}
