// Package storage writes consolidated reviews to the flat review file and
// loads the file back as a model.ReviewTable.
//
// The file starts with the header line
//
//	Airline Name | Title | Rating | Verified | Review_Text
//
// followed by a blank line and one record per line, fields separated by
// " | ". Inside a field, '\' '|' CR and LF are written as \\ \| \r and \n so
// that review text can never add or remove a field.
package storage
