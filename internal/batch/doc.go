// Package batch reads word lists for bulk import into the vocabulary.
package batch
