// Package compositor produces the composited raster for each output frame.
//
// The output canvas always matches the template asset's native pixel
// dimensions, fixed for the whole batch. Per frame, the source video is
// scaled and offset into the template's target region, the template art is
// drawn over it, the video is re-drawn inside the region (the template's own
// art there is a placeholder that must not show through), then captions and
// the watermark are overlaid.
package compositor
