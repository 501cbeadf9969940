package domain

// KeyPrefix namespaces every Redis key this service touches. The batch
// indexer writes catalog hashes and the vector index under the same prefix.
const KeyPrefix = "eaglesoak:"
