package server

const DefaultAddr = "127.0.0.1:7333"

type Config struct {
	HTTP    HTTPConfig
	Folders FoldersConfig
}

type HTTPConfig struct {
	Addr string
}

// FoldersConfig preloads a session at startup when all three folders
// are configured. Otherwise the user picks folders in the UI.
type FoldersConfig struct {
	Source string
	Dest1  string
	Dest2  string
}

func (f *FoldersConfig) Complete() bool {
	return f.Source != "" && f.Dest1 != "" && f.Dest2 != ""
}
