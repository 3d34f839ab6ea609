package adapter

import (
	"bufio"
	"bytes"
	"io"
)

// copySSE reads sourceStream chunk by chunk, writing each chunk to sink
// verbatim (and flushing) before the next read, while feeding a
// side-buffer line scanner that invokes onLine for every complete
// "data: ..." payload it sees. The client never waits on the line parser,
// and the line parser never holds back a byte already forwarded.
func copySSE(sourceStream io.Reader, sink StreamSink, onLine func(data string)) error {
	reader := bufio.NewReaderSize(sourceStream, 512)
	var pending bytes.Buffer

	buf := make([]byte, 512)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, err := sink.Write(chunk); err != nil {
				return err
			}
			sink.Flush()

			pending.Write(chunk)
			drainLines(&pending, onLine)
		}
		if readErr == io.EOF {
			drainLines(&pending, onLine)
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// drainLines consumes every complete newline-terminated line currently in
// buf, calling onLine for lines that carry an SSE "data:" payload, and
// leaves any trailing partial line in buf for the next read.
func drainLines(buf *bytes.Buffer, onLine func(data string)) {
	for {
		line, err := buf.ReadString('\n')
		if err != nil {
			// Incomplete line: push it back for the next chunk.
			buf.Reset()
			buf.WriteString(line)
			return
		}
		trimmed := bytes.TrimRight([]byte(line), "\r\n")
		if bytes.HasPrefix(trimmed, []byte("data:")) {
			data := bytes.TrimSpace(bytes.TrimPrefix(trimmed, []byte("data:")))
			onLine(string(data))
		}
	}
}
