// Package locate resolves the project directory covrun operates on.
//
// Resolution order
//
//  1. An explicit directory (the --dir flag)
//  2. The COVRUN_DIR environment variable
//  3. The nearest ancestor of the working directory that contains go.mod
//  4. The directory of the running executable
//
// Whatever the caller's working directory, the tests always run from the
// resolved directory.
package locate
