package catalog

// Workspace описывает одно рабочее пространство в YAML-каталоге.
type Workspace struct {
	Name           string          `yaml:"name"`
	ExportKey      string          `yaml:"export_key"`
	Disabled       bool            `yaml:"disabled,omitempty"`
	Questionnaires []Questionnaire `yaml:"questionnaires"`

	dir string // относительно него читаются файлы анкет
}

// Questionnaire: ключ "<id>$<version>" и путь к JSON-документу.
type Questionnaire struct {
	Key  string `yaml:"key"`
	File string `yaml:"file"`
}

type file struct {
	Workspaces []Workspace `yaml:"workspaces"`
}
