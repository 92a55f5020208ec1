package validators

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/types"
)

// ignoredQueryKeys are accepted on any route and never reach the handler.
var ignoredQueryKeys = map[string]struct{}{
	"_t": {},
}

// DecodeQuery fills dest from the request's query string using `query`
// struct tags. Unknown keys and repeated keys are rejected; `default` tags
// apply to absent keys. Supported field kinds are string, *string and int.
func DecodeQuery(r *http.Request, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, "query destination must be a struct pointer")
	}
	v = v.Elem()
	t := v.Type()

	values := r.URL.Query()
	known := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := strings.SplitN(t.Field(i).Tag.Get("query"), ",", 2)[0]; name != "" && name != "-" {
			known[name] = i
		}
	}

	var details []types.FieldError
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := ignoredQueryKeys[key]; ok {
			continue
		}
		if _, ok := known[key]; !ok {
			details = append(details, types.FieldError{Field: key, Message: fmt.Sprintf("unrecognized query parameter %q", key)})
			continue
		}
		if len(values[key]) > 1 {
			details = append(details, types.FieldError{Field: key, Message: fmt.Sprintf("%s must be provided at most once", key)})
		}
	}

	for name, idx := range known {
		field := v.Field(idx)
		raw, present := values[name]
		value := ""
		if present && len(raw) > 0 {
			value = strings.TrimSpace(raw[0])
		}
		if !present {
			value = t.Field(idx).Tag.Get("default")
			if value == "" {
				continue
			}
		}
		if fe := setQueryField(field, name, value); fe != nil {
			details = append(details, *fe)
		}
	}

	if len(details) > 0 {
		sort.SliceStable(details, func(i, j int) bool { return details[i].Field < details[j].Field })
		return pkgerrors.New(pkgerrors.CodeValidation, "query parameters validation failed").WithDetails(details)
	}
	return Validate(dest)
}

func setQueryField(field reflect.Value, name, value string) *types.FieldError {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Ptr:
		if field.Type().Elem().Kind() != reflect.String {
			return &types.FieldError{Field: name, Message: "unsupported query field"}
		}
		if value == "" {
			return nil
		}
		field.Set(reflect.ValueOf(&value))
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &types.FieldError{Field: name, Message: fmt.Sprintf("%s must be numeric", name)}
		}
		field.SetInt(n)
	default:
		return &types.FieldError{Field: name, Message: "unsupported query field"}
	}
	return nil
}
