// Package uniuri generates random strings from a fixed alphabet, used for initial passwords.
package uniuri
