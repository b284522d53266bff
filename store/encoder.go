package store

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v4"
	"gitlab.com/boxker/boxk"
)

const runPredicate = "run"

// MakeKey of a predicate and id
func MakeKey(id []byte, predicate string) []byte {
	key := []byte(predicate)
	key = append(key, byte(':'))
	key = append(key, id...)
	return key
}

// GetID of key from a pred:key
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:key
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// EncodeRun into a msgpack []byte slice
func EncodeRun(run *boxk.Run) ([]byte, error) {
	return msgpack.Marshal(run)
}

// DecodeRun from msgpack'd bytes
func DecodeRun(val []byte) (*boxk.Run, error) {
	run := &boxk.Run{}
	if err := msgpack.Unmarshal(val, run); err != nil {
		return nil, err
	}
	return run, nil
}
