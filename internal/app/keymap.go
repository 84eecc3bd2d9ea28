package app

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyEnter     = "enter"

	// Listing
	KeyTranscribe = "t"
	KeyRefresh    = "r"

	// Player
	KeySpace     = " "
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyBack      = "esc"
	KeyBackAlt   = "b"
	KeyNext      = "n"
	KeyPrevious  = "p"
	KeyClear     = "c"
	KeyExcellent = "1"
	KeyGood      = "2"
	KeyFair      = "3"
	KeyPoor      = "4"
)
