package vision

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Names таблица имён классов модели
type Names map[int]string

// Label возвращает имя класса; для неизвестного номера class_N
func (n Names) Label(id int) string {
	if label, ok := n[id]; ok {
		return label
	}
	return fmt.Sprintf("class_%d", id)
}

// LoadNames читает поле names из data.yaml: списком или отображением номер -> имя.
func LoadNames(path string) (Names, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read names table: %w", err)
	}
	return ParseNames(data)
}

// ParseNames разбирает содержимое data.yaml
func ParseNames(data []byte) (Names, error) {
	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse names table: %w", err)
	}

	names := Names{}
	switch doc.Names.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := doc.Names.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse names list: %w", err)
		}
		for i, l := range list {
			names[i] = l
		}
	case yaml.MappingNode:
		var m map[int]string
		if err := doc.Names.Decode(&m); err != nil {
			return nil, fmt.Errorf("parse names map: %w", err)
		}
		for k, v := range m {
			names[k] = v
		}
	default:
		return nil, errors.New("names table is missing")
	}
	return names, nil
}
