package repositories

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Record is one decoded Badger entry, as shown by the inspect tool.
type Record struct {
	Key   string
	Value any // domain.Message, domain.User or domain.KeyPair
	Err   error
}

// Prefixes lists the key spaces owned by the relay.
var Prefixes = []string{messagePrefix, userPrefix, keyPairPrefix}

// ScanRecords decodes every entry under prefix. Undecodable values are
// reported on the record instead of aborting the scan.
func ScanRecords(db *badger.DB, prefix string) ([]Record, error) {
	var records []Record
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			value, err := decodeRecord(key, val)
			records = append(records, Record{Key: key, Value: value, Err: err})
		}
		return nil
	})
	return records, err
}

func decodeRecord(key string, val []byte) (any, error) {
	switch {
	case strings.HasPrefix(key, messagePrefix):
		return unmarshalMessage(val)
	case strings.HasPrefix(key, userPrefix):
		return unmarshalUser(val)
	case strings.HasPrefix(key, keyPairPrefix):
		return unmarshalKeyPair(val)
	}
	return val, nil
}
