// Package file stores settings, prompt templates and analyzer rules as
// files under the whistle home directory.
package file
