package redis

const (
	// KeyPrefix namespaces every key written by caddyboard
	KeyPrefix = "caddyboard:"
	// KeySnapshot holds the JSON array of services
	KeySnapshot = KeyPrefix + "snapshot"
	// KeySnapshotMeta is a hash with metadata about the last write
	KeySnapshotMeta = KeyPrefix + "snapshot:meta"
)

// SnapshotKey returns the Redis key holding the service snapshot
func SnapshotKey() string {
	return KeySnapshot
}

// SnapshotMetaKey returns the Redis key of the snapshot metadata hash
func SnapshotMetaKey() string {
	return KeySnapshotMeta
}
