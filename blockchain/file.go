package blockchain

import (
	"os"
	"path/filepath"

	"github.com/kostaleonard/leocoin/errors"
	pkgerrors "github.com/pkg/errors"
)

// DefaultFilename is where a node keeps its chain between runs.
const DefaultFilename = "blockchain.bin"

// WriteFile replaces path with the chain encoding. The file is written to a
// temporary sibling first and renamed so readers never see a partial chain.
func WriteFile(path string, c *Blockchain) error {
	if c == nil {
		return errors.NewError(errors.CodeInvalidInput, "nil chain")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrap(errors.NewError(errors.CodeFileIO, err.Error()), "create chain directory")
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, c.Encode(), 0o644); err != nil {
		return pkgerrors.Wrapf(errors.NewError(errors.CodeFileIO, err.Error()), "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return pkgerrors.Wrapf(errors.NewError(errors.CodeFileIO, err.Error()), "rename %s", tmp)
	}
	return nil
}

// ReadFile decodes the chain stored at path.
func ReadFile(path string) (*Blockchain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(errors.NewError(errors.CodeFileIO, err.Error()), "read %s", path)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "decode chain file %s", path)
	}
	return c, nil
}
