package extsort

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"recsort/common"
	"recsort/record"
)

/**
* Manifest lists the chunk files of one completed chunking phase. It is only
* written once every chunk has been flushed and closed, so the merger never
* picks up the leftovers of a run that failed half way.
 */
type Manifest struct {
	Session string
	Key     record.SortKey
	Chunks  []ChunkFile
}

func (m *Manifest) Records() int64 {
	var total int64
	for _, c := range m.Chunks {
		total += c.Records
	}
	return total
}

func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Chunks))
	for i, c := range m.Chunks {
		paths[i] = c.Path
	}
	return paths
}

func WriteManifest(path string, m *Manifest) error {
	chunks := make([]interface{}, len(m.Chunks))
	for i, c := range m.Chunks {
		chunks[i] = map[string]interface{}{
			"path":    c.Path,
			"records": c.Records,
		}
	}
	s, err := structpb.NewStruct(map[string]interface{}{
		"session": m.Session,
		"key":     string(m.Key),
		"chunks":  chunks,
	})
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return common.NewFileError("write", path, err)
	}
	return nil
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewFileError("read", path, err)
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, common.NewFileError("decode", path, err)
	}

	fields := s.GetFields()
	m := &Manifest{
		Session: fields["session"].GetStringValue(),
		Key:     record.SortKey(fields["key"].GetStringValue()),
	}
	for _, v := range fields["chunks"].GetListValue().GetValues() {
		chunk := v.GetStructValue().GetFields()
		c := ChunkFile{
			Path:    chunk["path"].GetStringValue(),
			Records: int64(chunk["records"].GetNumberValue()),
		}
		if c.Path == "" {
			return nil, common.NewFileError("decode", path, errors.New("chunk entry without path"))
		}
		m.Chunks = append(m.Chunks, c)
	}
	if m.Session == "" {
		return nil, common.NewFileError("decode", path, errors.New("manifest without session"))
	}
	return m, nil
}
