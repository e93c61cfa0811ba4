// api/audit/chain.go
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ComputeChainHash implements spec.md §4.I step 3:
//
//	chain_hash = SHA-256( (prev.chain_hash or "") "|" canonical_serialize(entry_without_hash) )
//
// canonical_serialize orders object keys lexicographically, encodes
// context/metadata deterministically, renders timestamps as ISO-8601 UTC,
// and renders an absent prev_log_id as the literal string "null".
func ComputeChainHash(prevChainHash string, entry Entry) (string, error) {
	serialized, err := canonicalSerialize(entry)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(prevChainHash))
	h.Write([]byte("|"))
	h.Write(serialized)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalSerialize renders the hash input for one entry: a flat,
// lexicographically key-ordered JSON object built by hand so the encoding
// is stable across Go versions and map-iteration order.
func canonicalSerialize(e Entry) ([]byte, error) {
	fields := map[string]interface{}{
		"action":     e.Action,
		"agent_id":   e.AgentID,
		"allowed":    e.Allowed,
		"context":    canonicalValue(e.Context),
		"log_id":     e.LogID,
		"metadata":   canonicalValue(e.Metadata),
		"prev_log_id": prevLogIDField(e.PrevLogID),
		"request_id": e.RequestID,
		"resource":   e.Resource,
		"result":     string(e.Result),
		"timestamp":  e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// canonicalValue normalizes a nil map to an empty object so context/metadata
// serialize deterministically whether or not the caller supplied them.
func canonicalValue(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func prevLogIDField(id *string) string {
	if id == nil {
		return "null"
	}
	return *id
}
