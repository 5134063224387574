package schema

import (
	"regexp"
)

const primaryWorkspace = "primary"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier: имя годится и для GraphQL, и для SQL без экранирования.
func ValidIdentifier(s string) bool {
	return identRe.MatchString(s)
}

func checkIdent(what, name string) error {
	if !ValidIdentifier(name) {
		return &InvalidIdentifierError{What: what, Name: name}
	}
	return nil
}

// ExportSchema: схема экспорта рабочего пространства.
// primary -> default_<key>, остальные -> default_<ws>_<key>.
func ExportSchema(workspace, exportKey string) string {
	if workspace == primaryWorkspace {
		return "default_" + exportKey
	}
	return "default_" + workspace + "_" + exportKey
}

// EntityName: {workspace}_{questionnaire}_{version}
func EntityName(workspace, questionnaire, version string) string {
	return workspace + "_" + questionnaire + "_" + version
}

// TableName: {questionnaire}${version}
func TableName(questionnaire, version string) string {
	return questionnaire + "$" + version
}
