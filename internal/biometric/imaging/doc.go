// Package imaging implements the raster operations behind biometric feature
// extraction: decoding, Gaussian smoothing, contrast-limited adaptive histogram
// equalization, binarization, connected foreground regions with image moments,
// Laplacian sharpness and intensity histograms.
//
// All operations work on *image.Gray rasters whose bounds start at the origin
// (Decode and ToGray guarantee this) and never mutate their input. Borders are
// handled with reflect-101 extension (dcb|abcdefgh|gfe), matching the
// conventions of common computer-vision toolkits so scores stay comparable with
// templates produced elsewhere.
package imaging
