package domain

// KeyPrefix namespaces every key cardex writes to a shared key-value store.
const KeyPrefix = "cardex:"
