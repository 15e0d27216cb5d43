package scenarios

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// ArchiveContentType MIME-тип архива сценариев
const ArchiveContentType = "application/x-snappy"

// EncodeArchive сериализует сценарии в JSON и сжимает их Snappy
func EncodeArchive(items []Scenario) ([]byte, error) {
	if items == nil {
		items = []Scenario{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации архива: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// DecodeArchive распаковывает архив, созданный EncodeArchive
func DecodeArchive(data []byte) ([]Scenario, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("архив не является блоком snappy: %w", err)
	}

	var items []Scenario
	if err := json.Unmarshal(decompressed, &items); err != nil {
		return nil, fmt.Errorf("архив содержит неверный JSON: %w", err)
	}
	if items == nil {
		items = []Scenario{}
	}
	return items, nil
}
