package tui

// Key bindings handled by the model. Everything else goes to the text input.
const (
	KeyQuit     = "ctrl+c"
	KeySend     = "enter"
	KeyRecord   = "ctrl+r"
	KeyUpload   = "ctrl+o"
	KeyMode     = "ctrl+t"
	KeyLanguage = "tab"
	KeySpeak    = "ctrl+p"
	KeyClear    = "ctrl+l"
	KeyUp       = "pgup"
	KeyDown     = "pgdown"
)
