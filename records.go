package reportprep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/etnz/reportprep/date"
)

// IdentifierFile is the content of an "isin_…" file: the screened
// identifiers extracted for a client and a period.
type IdentifierFile struct {
	Client string      `json:"client"`
	Period date.Period `json:"period"`
	ISIN   []string    `json:"isin"`
}

// WriteJSON writes v to path as indented UTF-8 JSON. Characters like '<' or
// '&' are written as is.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("cannot encode %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	return nil
}

// readJSON decodes path into a generic document for jsonpath queries.
// A missing file is returned as is, so that errors.Is(err, fs.ErrNotExist) holds.
func readJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %q is not valid JSON: %v", ErrMalformedInput, path, err)
	}
	return doc, nil
}

func lookup(doc any, path, file string) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: missing field %s: %v", ErrMalformedInput, file, path, err)
	}
	return v, nil
}

func lookupString(doc any, path, file string) (string, error) {
	v, err := lookup(doc, path, file)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q: field %s is not a string: %v", ErrMalformedInput, file, path, v)
	}
	return s, nil
}

func lookupPeriod(doc any, prefix, file string) (date.Period, error) {
	start, err := lookupString(doc, prefix+".start_date", file)
	if err != nil {
		return date.Period{}, err
	}
	end, err := lookupString(doc, prefix+".end_date", file)
	if err != nil {
		return date.Period{}, err
	}
	p, err := date.ParsePeriod(start, end)
	if err != nil {
		return date.Period{}, fmt.Errorf("%w: %q: %v", ErrMalformedInput, file, err)
	}
	return p, nil
}

// WriteIdentifierFile writes f to path.
func WriteIdentifierFile(path string, f IdentifierFile) error {
	if f.ISIN == nil {
		f.ISIN = []string{}
	}
	return WriteJSON(path, f)
}

// ReadIdentifierFile reads an identifier file. Every missing or ill-typed field
// is reported as ErrMalformedInput naming the file and the field.
func ReadIdentifierFile(path string) (IdentifierFile, error) {
	var f IdentifierFile
	doc, err := readJSON(path)
	if err != nil {
		return f, err
	}
	if f.Client, err = lookupString(doc, "$.client", path); err != nil {
		return f, err
	}
	if strings.TrimSpace(f.Client) == "" {
		return f, fmt.Errorf("%w: %q: field $.client is empty", ErrMalformedInput, path)
	}
	if f.Period, err = lookupPeriod(doc, "$.period", path); err != nil {
		return f, err
	}
	v, err := lookup(doc, "$.isin", path)
	if err != nil {
		return f, err
	}
	list, ok := v.([]any)
	if !ok {
		return f, fmt.Errorf("%w: %q: field $.isin is not a list: %v", ErrMalformedInput, path, v)
	}
	f.ISIN = make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return f, fmt.Errorf("%w: %q: field $.isin[%d] is not a string: %v", ErrMalformedInput, path, i, item)
		}
		f.ISIN = append(f.ISIN, s)
	}
	return f, nil
}

// WriteClientRecord records the name of the current client.
func WriteClientRecord(path, name string) error {
	return WriteJSON(path, struct {
		Name string `json:"client_name"`
	}{name})
}

// ReadClientRecord returns the recorded client name. A missing record wraps
// fs.ErrNotExist; an empty name is malformed.
func ReadClientRecord(path string) (string, error) {
	doc, err := readJSON(path)
	if err != nil {
		return "", err
	}
	name, err := lookupString(doc, "$.client_name", path)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: %q: field $.client_name is empty", ErrMalformedInput, path)
	}
	return name, nil
}

// WriteDatesRecord records the report period.
func WriteDatesRecord(path string, p date.Period) error { return WriteJSON(path, p) }

// ReadDatesRecord returns the recorded report period.
func ReadDatesRecord(path string) (date.Period, error) {
	doc, err := readJSON(path)
	if err != nil {
		return date.Period{}, err
	}
	return lookupPeriod(doc, "$", path)
}
