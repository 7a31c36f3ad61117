package contracts

// InputFlags are the per-invocation values collected by the CLI.
type InputFlags struct {
	Mode       string
	BaseName   string
	MediaTypes []string
	Options    []string
	OutputDir  string
	ConfigFile string
}
