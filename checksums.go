package main

import "sync"

// Checksums holds the checksums of a flagged [File]. Only the enabled [HashType]s are filled in.
type Checksums struct {
	MD5    string `json:"md5,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	SHA512 string `json:"sha512,omitempty"`
	mu     sync.RWMutex
}

func (c *Checksums) field(ht HashType) *string {
	switch ht {
	case HashTypeMD5:
		return &c.MD5
	case HashTypeSHA1:
		return &c.SHA1
	case HashTypeSHA256:
		return &c.SHA256
	case HashTypeSHA512:
		return &c.SHA512
	default:
		return nil
	}
}

// Get returns the checksum of the given [HashType].
func (c *Checksums) Get(ht HashType) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f := c.field(ht); f != nil {
		return *f
	}
	return ""
}

// Set sets the checksum of the given [HashType]. Unknown types are ignored.
func (c *Checksums) Set(ht HashType, val string) {
	c.Merge(map[HashType]string{ht: val})
}

// Merge sets every checksum in sums, as returned by [MultiHasher.Hash].
func (c *Checksums) Merge(sums map[HashType]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ht, val := range sums {
		if f := c.field(ht); f != nil {
			*f = val
		}
	}
}
