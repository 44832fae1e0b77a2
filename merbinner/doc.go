/*
Package merbinner implements merbinner trees: binary tries keyed by hash
bits whose nodes commit, via keyed cryptographic hashing, to their subtree
contents and, optionally, to an aggregate sum over leaf values.

A tree's root hash commits to the full key-value mapping. Entries are
bucketed recursively: the bit of an entry's key hash at the current depth,
counted from the most significant bit, routes the entry left (bit 1) or
right (bit 0). A path with no entries is an empty node, exactly one entry
a leaf, two or more an inner node. The partition rule, node tags, and wire
layout are fixed so that independent implementations of the protocol agree
bit for bit.

All policy — key and value codecs, key hash extraction, sum extraction and
combination, the HMAC domain separation key — is carried by an explicit
Config record rather than by subtyping.

The standalone CalcHash and CalcSummedHash functions compute the same
commitments directly from pre-hashed leaves, without materializing a tree
or touching the original keys and values; they are the verification
primitive for a client that only knows hashes.
*/
package merbinner
