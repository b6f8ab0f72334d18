package errors

// Error code constants.
// Codes identify which stage of a seeding run failed; logs stay in English.

// Configuration error codes.
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeStoreConnectFail  = "STORE_CONNECTION_FAILED"
	CodeSecretHashFail    = "SECRET_HASH_FAILED"
	CodeSchemaAccessFail  = "SCHEMA_ACCESS_FAILED"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
)

// Convenience constructors using predefined codes.

// ConfigInvalid creates a configuration error, raised before any resource is acquired.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// StoreConnectFailed wraps a failure to reach the document store.
func StoreConnectFailed(err error) *AppError {
	return Wrap(err, CodeStoreConnectFail, "connect to store")
}

// SecretHashFailed wraps a failure of the secret hasher.
func SecretHashFailed(err error) *AppError {
	return Wrap(err, CodeSecretHashFail, "hash admin secret")
}

// SchemaAccessFailed wraps a failure to read or interpret the target schema.
func SchemaAccessFailed(err error) *AppError {
	return Wrap(err, CodeSchemaAccessFail, "read target schema")
}

// PersistenceFailed wraps a lookup or write failure against the store.
// op names the failed round-trip ("lookup", "create", "save").
func PersistenceFailed(op string, err error) *AppError {
	return Wrap(err, CodePersistenceFailed, op+" admin record").
		WithParams(map[string]interface{}{"operation": op})
}
