package mem

import (
	"encoding/binary"
	"fmt"

	"github.com/minio/highwayhash"
)

const checksumSize = 8

var checksumKey = []byte("vecindex-snapshot-checksum-key!!")

func checksum(data []byte) (uint64, error) {
	h, err := highwayhash.New64(checksumKey)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// seal prefixes payload with its checksum.
func seal(payload []byte) ([]byte, error) {
	sum, err := checksum(payload)
	if err != nil {
		return nil, err
	}
	result := make([]byte, checksumSize+len(payload))
	binary.BigEndian.PutUint64(result, sum)
	copy(result[checksumSize:], payload)
	return result, nil
}

// unseal verifies and strips the checksum written by seal.
func unseal(data []byte) ([]byte, error) {
	if len(data) < checksumSize {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	payload := data[checksumSize:]
	sum, err := checksum(payload)
	if err != nil {
		return nil, err
	}
	if expected := binary.BigEndian.Uint64(data); expected != sum {
		return nil, fmt.Errorf("snapshot checksum mismatch: %x != %x", sum, expected)
	}
	return payload, nil
}
