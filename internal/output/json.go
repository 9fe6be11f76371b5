package output

import (
	"encoding/json"

	"github.com/openports/openports/pkg/model"
)

func ToJSON(conns []model.Connection) (string, error) {
	data, err := json.MarshalIndent(conns, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
