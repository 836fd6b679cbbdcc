// Package exporter writes a filtered allocation table for download.
//
// CSV output goes through StreamWriter and starts with a UTF-8 BOM so Excel
// opens it with the right encoding. XLSX output is a single sheet built with
// excelize's stream writer, keeping numeric cells numeric.
//
// Example usage:
//
//	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", format.ContentType())
//	err = exporter.Write(w, filtered, format)
package exporter
