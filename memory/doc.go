// Package memory implements the durable conversation store: one JSON file
// per (user, chat) key, rewritten wholesale after every mutation and loaded
// eagerly at startup. The store favors correctness over throughput; it is a
// conversation log, not a high-volume database.
package memory
