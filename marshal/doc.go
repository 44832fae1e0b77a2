/*
Package marshal provides serialization and deserialization for complex,
immutable, cryptographic proof objects.

A proof type describes its fields exactly once, as a sequence of calls
against a SerializationContext, and that single definition is replayed
unmodified against every backend: a byte stream, an in-memory buffer, a
human-readable map form, and a hashing form in which every nested object is
replaced by its 32-byte commitment. The hashing form together with per-type
HMAC-SHA-256 domain separation keys turns composite proofs into genuine
Merkle structures: changing a deeply nested field changes exactly the chain
of ancestor hashes and nothing else.
*/
package marshal
