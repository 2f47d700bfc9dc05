package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/wonny/covidtrend/internal/contracts"
)

// statusByCode maps public error codes to HTTP status
var statusByCode = map[string]int{
	contracts.CodeUnknownRegion:    http.StatusNotFound,
	contracts.CodeInvalidDateRange: http.StatusBadRequest,
	contracts.CodeInvalidParameter: http.StatusBadRequest,
	contracts.CodeInsufficientData: http.StatusUnprocessableEntity,
	contracts.CodeDataLoad:         http.StatusInternalServerError,
	contracts.CodeInternal:         http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error
func StatusFor(err error) int {
	if status, ok := statusByCode[contracts.ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondJSON writes v as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error","code":"INTERNAL_ERROR"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RespondError writes {error, code}. Server-side failures never leak their message.
func RespondError(w http.ResponseWriter, err error) {
	code := contracts.ErrorCode(err)
	status := StatusFor(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}

	RespondJSON(w, status, contracts.ErrorResponse{Error: msg, Code: code})
}

// optionalInt reads an integer query parameter; missing or blank means nil
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &contracts.InvalidParameterError{Field: name, Reason: "must be an integer"}
	}
	return &v, nil
}

// stateList collects states from repeated states[] / states params and comma lists
func stateList(r *http.Request) []string {
	q := r.URL.Query()
	raw := append(q["states[]"], q["states"]...)

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
