package quadblur

// VertexUploader mirrors ranges of a QuadGrid's vertex bytes into a device
// vertex buffer.
type VertexUploader struct {
	dev    Device
	grid   *QuadGrid
	buffer BufferID

	// uploads and bytes count the writes issued since the last ResetStats.
	uploads int
	bytes   int
}

// NewVertexUploader allocates a dynamic vertex buffer sized for the grid.
// Nothing is uploaded until UploadAll.
func NewVertexUploader(dev Device, grid *QuadGrid) *VertexUploader {
	return &VertexUploader{
		dev:    dev,
		grid:   grid,
		buffer: dev.NewBuffer(VertexBuffer, grid.Len()*QuadStride, DynamicDraw),
	}
}

// Buffer returns the device vertex buffer.
func (u *VertexUploader) Buffer() BufferID { return u.buffer }

// UploadAll writes every quad in one call.
func (u *VertexUploader) UploadAll() {
	u.write(0, u.grid.Len())
}

// UploadRange writes r one row at a time. Each row is a contiguous byte
// span because quads are stored row-major.
func (u *VertexUploader) UploadRange(r GridRange) {
	aw := u.grid.AreaWidth()
	n := u.grid.Len()
	for y := r.YBeg; y <= r.YEnd; y++ {
		beg := y*aw + r.XBeg
		if beg >= n {
			continue
		}
		end := min(y*aw+r.XEnd+1, n)
		u.write(beg, end)
	}
}

func (u *VertexUploader) write(beg, end int) {
	data := u.grid.VertexBytes(beg, end)
	u.dev.UploadBuffer(u.buffer, beg*QuadStride, data)
	u.uploads++
	u.bytes += len(data)
}

// Stats returns the upload count and byte total since the last ResetStats.
func (u *VertexUploader) Stats() (uploads, bytes int) { return u.uploads, u.bytes }

// ResetStats zeroes the counters reported by Stats.
func (u *VertexUploader) ResetStats() { u.uploads, u.bytes = 0, 0 }

// Release deletes the device buffer.
func (u *VertexUploader) Release() {
	if u.buffer != 0 {
		u.dev.DeleteBuffer(u.buffer)
		u.buffer = 0
	}
}
