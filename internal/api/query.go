package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"surveygraph/internal/query"
)

// ==== Параметры листинга ====

type ListParams struct {
	Limit     int
	Selection query.Selection
}

// parseListParams: fields=age,household.member_name и limit (или _fields/_limit).
// Без fields выбираются все скалярные поля сущности.
func parseListParams(q url.Values, defaultLimit int) (ListParams, error) {
	lp := ListParams{Limit: defaultLimit}

	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		n, err := strconv.Atoi(lv)
		if err != nil {
			return ListParams{}, fmt.Errorf("limit: %q is not an integer", lv)
		}
		lp.Limit = n
	}

	fv := strings.TrimSpace(q.Get("_fields"))
	if fv == "" {
		fv = strings.TrimSpace(q.Get("fields"))
	}
	if fv != "" {
		sel, err := query.ParseFieldList(fv)
		if err != nil {
			return ListParams{}, err
		}
		lp.Selection = sel
	}
	return lp, nil
}
