// Package streamjson decodes the text blobs emitted by the corrosion CLI
// into generic JSON records.
//
// Corrosion's subcommands are inconsistent about framing: depending on the
// subcommand and version, output is a single JSON object, a JSON array, or
// several complete objects concatenated back-to-back with nothing but
// whitespace between them. Decode accepts all three without the caller
// having to know which one it got.
//
// Numbers are decoded as json.Number so that 64-bit packed timestamps
// survive without float rounding.
package streamjson
