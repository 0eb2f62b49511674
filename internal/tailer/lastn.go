package tailer

import "os"

// readLastNLines reads the last n lines from a file by scanning backwards in
// chunks, so large log files are not loaded whole.
// Returns lines in file order (oldest first).
func readLastNLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := stat.Size()
	if fileSize == 0 {
		return nil, nil
	}

	const chunkSize = 4096
	var lines []string
	var buffer []byte
	offset := fileSize

	for len(lines) < n && offset > 0 {
		readSize := int64(chunkSize)
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize

		chunk := make([]byte, readSize)
		if _, err := f.ReadAt(chunk, offset); err != nil {
			return nil, err
		}

		buffer = append(chunk, buffer...)
		lines = extractLines(buffer, n)
	}

	return lines, nil
}

// extractLines splits buffer into non-empty lines, keeping only the last n.
func extractLines(buffer []byte, n int) []string {
	var lines []string
	start := 0

	appendLine := func(raw []byte) {
		if line := sanitizeLine(string(raw)); line != "" {
			lines = append(lines, line)
		}
	}

	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			appendLine(buffer[start:i])
			start = i + 1
		}
	}
	if start < len(buffer) {
		appendLine(buffer[start:])
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
