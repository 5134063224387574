package questionnaire

// ParseError: документ анкеты не удалось разобрать в дерево групп/вопросов.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "questionnaire: " + e.Reason + ": " + e.Err.Error()
	}
	return "questionnaire: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
