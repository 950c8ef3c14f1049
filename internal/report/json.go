package report

import (
	"github.com/bytedance/sonic"
	"github.com/tidwall/pretty"
)

// JSON: компактный вывод для API и websocket.
func JSON(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}

// PrettyJSON indents the document, optionally with terminal colors.
func PrettyJSON(v interface{}, color bool) ([]byte, error) {
	b, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	b = pretty.Pretty(b)
	if color {
		b = pretty.Color(b, nil)
	}
	return b, nil
}
