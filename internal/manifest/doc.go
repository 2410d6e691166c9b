// Package manifest extracts dataset entries from ESGF wget download scripts.
//
// An ESGF wget script carries its file list in an embedded here-document:
//
//	download_files="$(cat <<EOF--dataset.file.url.chksum_type.chksum
//	'tas_day_x.nc' 'http://esgf.example/tas_day_x.nc' 'SHA256' 'ab12...'
//	EOF--dataset.file.url.chksum_type.chksum
//	)"
//
// Extract locates that block and returns one Entry per data line, in the
// order the lines appear. Lines are tokenized with shell quoting rules, so
// filenames containing spaces survive as single fields.
//
// # Errors
//
// Extract returns ErrBlockNotFound when the script has no download block
// and ErrNoEntries when the block contains no usable lines. Both indicate
// a malformed script; neither involves any network activity.
package manifest
