package exchange

// Translation picks the translation line shown under a reply.
// target_text wins; ja_text is the fallback only when the detected language
// is not the default one. A default-language reply without target_text shows none.
func Translation(r Reply) string {
	if r.TargetText != "" {
		return r.TargetText
	}
	if r.DetectedLanguage != DefaultLanguage && r.JaText != "" {
		return r.JaText
	}
	return ""
}

// Label names the summary line for the current display mode.
func Label(mode Mode) string {
	if mode == ModeOriginal {
		return "Original"
	}
	return "Summary"
}

// Toggle returns the other display mode.
func (m Mode) Toggle() Mode {
	if m == ModeOriginal {
		return ModeSummary
	}
	return ModeOriginal
}

// Speakable reports the text eligible for spoken playback.
func (r Reply) Speakable() string {
	return r.SpeakTarget
}
