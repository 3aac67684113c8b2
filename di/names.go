package di

// KeyNames lists the binding keys shared by the framework packages.
type KeyNames struct {
	Config     string
	Logger     string
	Files      string
	Database   string
	Publisher  string
	Console    string
	Factories  string
	BanService string
}

// Keys contains all well-known binding keys.
var Keys = KeyNames{
	Config:     "config",
	Logger:     "logger",
	Files:      "files",
	Database:   "database",
	Publisher:  "publisher",
	Console:    "console",
	Factories:  "factories",
	BanService: "ban.service",
}
