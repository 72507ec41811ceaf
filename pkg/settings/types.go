package settings

// Settings holds the tool configuration loaded from an optional .pyrun.yaml
// in the working directory. Every field has a default; an absent file yields
// the zero configuration below.
type Settings struct {
	Repository    string            `yaml:"repository" mapstructure:"repository" validate:"required"`
	ContainerName string            `yaml:"containerName" mapstructure:"containerName" validate:"required"`
	UniqueName    bool              `yaml:"uniqueName" mapstructure:"uniqueName"`
	Workdir       string            `yaml:"workdir" mapstructure:"workdir" validate:"required,startswith=/"`
	Env           map[string]string `yaml:"env" mapstructure:"env"`
}

// Default returns the out-of-the-box settings: the official python image
// family, a fixed container name, and the conventional mount target.
func Default() *Settings {
	return &Settings{
		Repository:    "python",
		ContainerName: "pyrun",
		UniqueName:    false,
		Workdir:       "/usr/src/app",
	}
}
