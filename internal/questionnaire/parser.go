package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"surveygraph/internal/metadata"
)

const groupType = "Group"

// node описывает элемент дерева документа в формате сервера анкет.
type node struct {
	Kind               string          `json:"$type"`
	PublicKey          string          `json:"PublicKey"`
	VariableName       string          `json:"VariableName"`
	Title              string          `json:"Title"`
	IsRoster           bool            `json:"IsRoster"`
	Children           []node          `json:"Children"`
	StataExportCaption string          `json:"StataExportCaption"`
	VariableLabel      string          `json:"VariableLabel"`
	Name               string          `json:"Name"`
	Label              string          `json:"Label"`
	VarType            json.RawMessage `json:"Type"`
}

// подтипы переменных: по числовому коду и по имени
var variableTypes = map[string]string{
	"1":           metadata.VariableLong,
	"2":           metadata.VariableDouble,
	"3":           metadata.VariableBool,
	"4":           metadata.VariableDate,
	"5":           metadata.VariableString,
	"LONGINTEGER": metadata.VariableLong,
	"LONG":        metadata.VariableLong,
	"DOUBLE":      metadata.VariableDouble,
	"BOOLEAN":     metadata.VariableBool,
	"DATETIME":    metadata.VariableDate,
	"DATE":        metadata.VariableDate,
	"STRING":      metadata.VariableString,
}

// Parse разбирает сырой JSON документа анкеты в metadata.Document.
// Корень документа сам является группой (не ростером).
func Parse(raw []byte) (*metadata.Document, error) {
	var root node
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&root); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	if strings.TrimSpace(root.VariableName) == "" {
		return nil, &ParseError{Reason: "document has no VariableName"}
	}

	rootID := root.PublicKey
	if rootID == "" {
		rootID = "root"
	}
	doc := &metadata.Document{
		ID:           root.PublicKey,
		VariableName: root.VariableName,
		Title:        root.Title,
		RootID:       rootID,
		Groups: map[string]metadata.Group{
			rootID: {ID: rootID, VariableName: root.VariableName, Title: root.Title},
		},
	}

	p := &walker{doc: doc, seen: map[string]struct{}{rootID: {}}}
	if err := p.walk(root.Children, rootID); err != nil {
		return nil, err
	}
	return doc, nil
}

type walker struct {
	doc  *metadata.Document
	seen map[string]struct{}
}

func (w *walker) walk(children []node, parentID string) error {
	for i := range children {
		n := &children[i]
		kind := normalizeKind(n.Kind)
		if kind == "" {
			return &ParseError{Reason: fmt.Sprintf("child %d of %q has no $type", i, parentID)}
		}
		if n.PublicKey == "" {
			return &ParseError{Reason: fmt.Sprintf("%s under %q has no PublicKey", kind, parentID)}
		}
		if _, dup := w.seen[n.PublicKey]; dup {
			return &ParseError{Reason: fmt.Sprintf("duplicate PublicKey %q", n.PublicKey)}
		}
		w.seen[n.PublicKey] = struct{}{}

		if kind == groupType {
			w.doc.Groups[n.PublicKey] = metadata.Group{
				ID:           n.PublicKey,
				ParentID:     parentID,
				IsRoster:     n.IsRoster,
				VariableName: n.VariableName,
				Title:        n.Title,
			}
			if err := w.walk(n.Children, n.PublicKey); err != nil {
				return err
			}
			continue
		}

		q := metadata.Question{
			ID:       n.PublicKey,
			ParentID: parentID,
			Kind:     kind,
			Name:     n.StataExportCaption,
			Label:    n.VariableLabel,
		}
		if kind == metadata.KindVariable {
			q.Name = n.Name
			q.Label = n.Label
			vt, err := variableType(n.VarType)
			if err != nil {
				return &ParseError{Reason: fmt.Sprintf("variable %q", n.Name), Err: err}
			}
			q.VariableType = vt
		}
		if q.Name == "" && !metadata.IsPresentational(kind) {
			return &ParseError{Reason: fmt.Sprintf("%s %q has no variable name", kind, n.PublicKey)}
		}
		w.doc.Questions = append(w.doc.Questions, q)
	}
	return nil
}

// normalizeKind срезает квалификацию .NET-типа:
// "WB.Core.SharedKernels.QuestionnaireEntities.TextQuestion, WB.Core" -> "TextQuestion".
func normalizeKind(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func variableType(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("missing Type")
	}
	var key string
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		key = strconv.Itoa(n)
	} else if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("Type must be a number or a string: %w", err)
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	if vt, ok := variableTypes[key]; ok {
		return vt, nil
	}
	// неизвестный подтип отсеется при разрешении типа
	return key, nil
}

// ParseKey делит ключ документа "<id>$<version>".
func ParseKey(key string) (id, version string, err error) {
	i := strings.LastIndexByte(key, '$')
	if i <= 0 || i == len(key)-1 {
		return "", "", &ParseError{Reason: fmt.Sprintf("malformed questionnaire key %q", key)}
	}
	id, version = key[:i], key[i+1:]
	if _, err := strconv.Atoi(version); err != nil {
		return "", "", &ParseError{Reason: fmt.Sprintf("questionnaire key %q: version is not a number", key)}
	}
	return id, version, nil
}
