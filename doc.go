// Package formfs splits a multipart/form-data stream into files.
//
// A [Decoder] reads a form submission from an [io.Reader] and writes every
// field into a [Namespace], a working directory on disk. A field named "a"
// becomes the file "a". When the same name arrives again, "a" is turned into
// a directory holding the values as "a/0", "a/1", and so on, together with a
// counter file "a/.n". Header parameters other than "name" (a filename, for
// instance) are stored next to the value in sidecar files such as ".a:filename"
// or "a/.1:filename".
//
// The decoder never holds more than a fixed window of the input in memory,
// so arbitrarily large uploads are streamed straight to disk.
package formfs
