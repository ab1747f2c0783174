package common

// record line encoding
const DELIMITER = ","
const NUM_FIELDS = 9
const DATE_LAYOUT = "2006-01-02"

// modify this for bigger chunks. A record line is ~80 bytes, so the
// default keeps a chunk buffer well below 64MB of heap.
const DEFAULT_CHUNK_RECORDS = 100_000

// progress is reported once every PROGRESS_INTERVAL records
const PROGRESS_INTERVAL = 1000

// the chunking phase owns [0, CHUNKING_SHARE], merging owns the rest
const CHUNKING_SHARE = 50
const DONE = 100

// temp file naming: <tempDir>/extsort-<session>-<n>.chunk
const TEMP_PREFIX = "extsort-"
const CHUNK_EXT = ".chunk"
const MANIFEST_EXT = ".manifest"
const TEMP_OUTPUT_EXT = ".tmp"

// buffer size for chunk readers/writers
const IO_BUFFER_SIZE = 64 * 1024

// longest accepted input line, terminator excluded
const MAX_LINE_SIZE = 1 << 20
