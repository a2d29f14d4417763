// Package password hashes stored credentials with Argon2id in PHC string
// format. It is used by the engine after a password-change ticket has been
// consumed and the transport ciphertext decrypted; it never sees tickets or
// tokens.
package password
