// Package props loads key-value property files through the [line]
// preprocessor.
//
// Each logical line is one property:
//
//	# database settings
//	@common.properties
//	host = db.example.com
//	port: 5432
//	motd = first part \
//	       second part
//
// Keys end at the first '=' or ':'; a backslash escapes a separator inside a
// key. Directives include other property files, and a key defined more than
// once takes its last value while keeping the position of its first.
package props
