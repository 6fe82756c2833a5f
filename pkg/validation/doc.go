// Package validation checks raw request bodies against JSON Schemas before
// they are decoded into drafts.
//
// Schemas are loaded once from a file system (usually an embed.FS) and
// compiled with the Draft 2020-12 dialect:
//
//	set, err := validation.LoadSchemas(schemaFS, "schemas/*.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := set.Validate("zone-draft", body)
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        log.Printf("%s: %s", e.Field, e.Message)
//	    }
//	}
//
// A schema's name is its file name without the extension.
package validation
