package client

import (
	"fmt"
	"io"
	"strconv"

	extsort "recsort/external_sort"
	"recsort/record"
	"recsort/stats"
)

func printRecords(w io.Writer, key record.SortKey, records []*record.Record) {
	title := "Top " + strconv.Itoa(len(records))
	if key != "" {
		title += " by " + key.String()
	}
	fmt.Fprintln(w, title)
	for i, r := range records {
		fmt.Fprintf(w, "%3d. %s %-12s %s volume=%d amount=%s\n",
			i+1, r.Code, r.Name, r.Date.Format("2006-01-02"), r.Volume, strconv.FormatFloat(r.Amount, 'f', 2, 64))
	}
}

func printResult(w io.Writer, result *extsort.Result) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sorted records............................"+strconv.FormatInt(result.Records, 10))
	fmt.Fprintln(w, "Chunks...................................."+strconv.Itoa(result.Chunks))
	fmt.Fprintln(w, "Skipped lines............................."+strconv.FormatInt(result.Skipped, 10))
	fmt.Fprintln(w, "Output...................................."+result.Output)
	fmt.Fprintln(w, "------------------------------------------------------")
}

func printStats(w io.Writer, s stats.Snapshot) {
	fmt.Fprintln(w, "Records read.............................."+strconv.FormatInt(s.RecordsRead, 10))
	fmt.Fprintln(w, "Records merged............................"+strconv.FormatInt(s.RecordsMerged, 10))
	fmt.Fprintln(w, "Chunks written............................"+strconv.FormatInt(s.ChunksWritten, 10))
	fmt.Fprintln(w, "------------------------------------------------------")
}
