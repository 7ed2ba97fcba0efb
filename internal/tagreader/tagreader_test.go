package tagreader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeVorbisComment(entries map[string]string) []byte {
	var body []byte
	vendor := "crate-test"
	vendorLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(vendorLen, uint32(len(vendor)))
	body = append(body, vendorLen...)
	body = append(body, []byte(vendor)...)

	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(entries)))
	body = append(body, countBuf...)

	for k, v := range entries {
		entry := k + "=" + v
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(entry)))
		body = append(body, lenBuf...)
		body = append(body, []byte(entry)...)
	}
	return body
}

func writeFLACFile(t *testing.T, dir string, commentBody []byte) string {
	t.Helper()
	var buf []byte
	buf = append(buf, []byte(flacMagic)...)

	header := make([]byte, 4)
	header[0] = 0x80 | blockTypeVorbisComment // last block, VORBIS_COMMENT
	length := len(commentBody)
	header[1] = byte(length >> 16)
	header[2] = byte(length >> 8)
	header[3] = byte(length)
	buf = append(buf, header...)
	buf = append(buf, commentBody...)

	path := filepath.Join(dir, "test.flac")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFLACVorbisComment(t *testing.T) {
	dir := t.TempDir()
	body := writeVorbisComment(map[string]string{
		"ALBUM":       "Waiting",
		"ALBUMARTIST": "New Found Glory",
		"ARTIST":      "New Found Glory",
		"DATE":        "1998",
	})
	path := writeFLACFile(t, dir, body)

	tags := Read(path, "flac")
	if tags == nil {
		t.Fatal("expected tags, got nil")
	}
	if tags.Album != "Waiting" || tags.AlbumArtist != "New Found Glory" || tags.Year != "1998" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestReadFLACBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.flac")
	if err := os.WriteFile(path, []byte("NOTFLAC"), 0o644); err != nil {
		t.Fatal(err)
	}
	if tags := Read(path, "flac"); tags != nil {
		t.Errorf("expected nil for bad magic, got %+v", tags)
	}
}

func TestReadID3v1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")

	buf := make([]byte, id3v1Size)
	copy(buf[0:3], "TAG")
	copy(buf[3:33], "Something I Call Personality")
	copy(buf[33:63], "New Found Glory")
	copy(buf[63:93], "Waiting")
	copy(buf[93:97], "1998")

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	tags := Read(path, "mp3")
	if tags == nil {
		t.Fatal("expected tags, got nil")
	}
	if tags.Album != "Waiting" || tags.Artist != "New Found Glory" || tags.Year != "1998" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestReadID3v1TooShort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.mp3")
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if tags := Read(path, "mp3"); tags != nil {
		t.Errorf("expected nil for short file, got %+v", tags)
	}
}

func TestReadID3v1EmptyAlbumIsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noalbum.mp3")

	buf := make([]byte, id3v1Size)
	copy(buf[0:3], "TAG")
	copy(buf[3:33], "Some Title")

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	if tags := Read(path, "mp3"); tags != nil {
		t.Errorf("expected nil for empty album, got %+v", tags)
	}
}

func TestReadUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.ogg")
	if err := os.WriteFile(path, []byte("whatever"), 0o644); err != nil {
		t.Fatal(err)
	}
	if tags := Read(path, "ogg"); tags != nil {
		t.Errorf("expected nil for unsupported extension, got %+v", tags)
	}
}
