package logging

// Config is the optional "logging" section of idler.yml, decoded with
// config.UnmarshalExtension.
type Config struct {
	// Level is debug, info, warn or error. IDLER_LOG_LEVEL wins over it.
	Level string `yaml:"level"`

	// ReportCaller adds file:line to every record. IDLER_LOG_CALLER=true
	// turns it on too.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig controls the per-component log file.
type FileSinkConfig struct {
	Disabled bool `yaml:"disabled"`
	// Path replaces <state dir>/logs/<component>-<date>.log.
	Path string `yaml:"path"`
}

// FormatConfig controls how records are rendered.
type FormatConfig struct {
	// Preset is "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (the default), "always" or "never". In
	// auto mode records reach stderr only at debug level or when stderr is
	// not a terminal.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
