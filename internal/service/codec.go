package service

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/class-scheduler/internal/scheduling"
)

// decode заполняет dst из Struct-запроса по json-тегам.
func decode(in *structpb.Struct, dst any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return &scheduling.ShapeError{Fields: []string{err.Error()}}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &scheduling.ShapeError{Fields: []string{err.Error()}}
	}
	return nil
}

// encode превращает ответ с json-тегами в Struct.
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
