// Package ebml implements the generic EBML framing Matroska is built on:
// variable-length integers, element headers, and typed element content.
package ebml

// Kind classifies how an element's content should be decoded.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMaster
	KindUint
	KindInt
	KindString
	KindUTF8
	KindBinary
	KindFloat
	KindDate
)

// EBML header elements.
const (
	IDEBML             uint32 = 0x1A45DFA3
	IDEBMLVersion      uint32 = 0x4286
	IDEBMLReadVersion  uint32 = 0x42F7
	IDEBMLMaxIDLength  uint32 = 0x42F2
	IDEBMLMaxSizeLen   uint32 = 0x42F3
	IDDocType          uint32 = 0x4282
	IDDocTypeVersion   uint32 = 0x4287
	IDDocTypeReadVer   uint32 = 0x4285
)

// Global elements.
const (
	IDVoid  uint32 = 0xEC
	IDCRC32 uint32 = 0xBF
)

// Matroska Segment.
const IDSegment uint32 = 0x18538067

// SeekHead.
const (
	IDSeekHead    uint32 = 0x114D9B74
	IDSeek        uint32 = 0x4DBB
	IDSeekID      uint32 = 0x53AB
	IDSeekPos     uint32 = 0x53AC
)

// Segment Information.
const (
	IDInfo             uint32 = 0x1549A966
	IDSegmentUID       uint32 = 0x73A4
	IDSegmentFilename  uint32 = 0x7384
	IDTimecodeScale    uint32 = 0x2AD7B1
	IDDuration         uint32 = 0x4489
	IDDateUTC          uint32 = 0x4461
	IDTitle            uint32 = 0x7BA9
	IDMuxingApp        uint32 = 0x4D80
	IDWritingApp       uint32 = 0x5741
)

// Cluster (media data); never interpreted beyond skipping.
const (
	IDCluster     uint32 = 0x1F43B675
	IDTimecode    uint32 = 0xE7
	IDSimpleBlock uint32 = 0xA3
	IDBlockGroup  uint32 = 0xA0
	IDBlock       uint32 = 0xA1
)

// Tracks.
const (
	IDTracks        uint32 = 0x1654AE6B
	IDTrackEntry    uint32 = 0xAE
	IDTrackNumber   uint32 = 0xD7
	IDTrackUID      uint32 = 0x73C5
	IDTrackType     uint32 = 0x83
	IDCodecID       uint32 = 0x86
	IDCodecPrivate  uint32 = 0x63A2
)

// Cues (index).
const (
	IDCues                uint32 = 0x1C53BB6B
	IDCuePoint            uint32 = 0xBB
	IDCueTime             uint32 = 0xB3
	IDCueTrackPositions   uint32 = 0xB7
)

// Attachments.
const (
	IDAttachments      uint32 = 0x1941A469
	IDAttachedFile     uint32 = 0x61A7
	IDFileDescription  uint32 = 0x467E
	IDFileName         uint32 = 0x466E
	IDFileMimeType     uint32 = 0x4660
	IDFileData         uint32 = 0x465C
	IDFileUID          uint32 = 0x46AE
)

// Chapters.
const (
	IDChapters         uint32 = 0x1043A770
	IDEditionEntry     uint32 = 0x45B9
	IDEditionUID       uint32 = 0x45BC
	IDChapterAtom      uint32 = 0xB6
	IDChapterUID       uint32 = 0x73C4
	IDChapterTimeStart uint32 = 0x91
	IDChapterTimeEnd   uint32 = 0x92
	IDChapterDisplay   uint32 = 0x80
	IDChapString       uint32 = 0x85
	IDChapLanguage     uint32 = 0x437C
)

// Tags — the primary concern of this module.
const (
	IDTags             uint32 = 0x1254C367
	IDTag              uint32 = 0x7373
	IDTargets          uint32 = 0x63C0
	IDTargetTypeValue  uint32 = 0x68CA
	IDTargetType       uint32 = 0x63CA
	IDTagTrackUID      uint32 = 0x63C5
	IDTagEditionUID    uint32 = 0x63C9
	IDTagChapterUID    uint32 = 0x63C4
	IDTagAttachmentUID uint32 = 0x63C6
	IDSimpleTag        uint32 = 0x67C8
	IDTagName          uint32 = 0x45A3
	IDTagLanguage      uint32 = 0x447A
	IDTagLanguageBCP47 uint32 = 0x447B
	IDTagDefault       uint32 = 0x4484
	IDTagString        uint32 = 0x4487
	IDTagBinary        uint32 = 0x4485
)

// Registry mirrors mkvio.ElementRegister: every ID this module frames,
// with the Kind used to decide how to decode its content. IDs the
// navigator only skips past (Cluster children, Track details) are
// registered too, even though nothing above ebml/matroska ever reads
// their content. ReadHeader frames any element without consulting
// this table.
type Registry struct {
	ID   uint32
	Kind Kind
	Name string
}

var registry = map[uint32]Registry{
	IDEBML:             {IDEBML, KindMaster, "EBML"},
	IDEBMLVersion:      {IDEBMLVersion, KindUint, "EBMLVersion"},
	IDEBMLReadVersion:  {IDEBMLReadVersion, KindUint, "EBMLReadVersion"},
	IDEBMLMaxIDLength:  {IDEBMLMaxIDLength, KindUint, "EBMLMaxIDLength"},
	IDEBMLMaxSizeLen:   {IDEBMLMaxSizeLen, KindUint, "EBMLMaxSizeLength"},
	IDDocType:          {IDDocType, KindString, "DocType"},
	IDDocTypeVersion:   {IDDocTypeVersion, KindUint, "DocTypeVersion"},
	IDDocTypeReadVer:   {IDDocTypeReadVer, KindUint, "DocTypeReadVersion"},

	IDVoid:  {IDVoid, KindBinary, "Void"},
	IDCRC32: {IDCRC32, KindBinary, "CRC32"},

	IDSegment: {IDSegment, KindMaster, "Segment"},

	IDSeekHead: {IDSeekHead, KindMaster, "SeekHead"},
	IDSeek:     {IDSeek, KindMaster, "Seek"},
	IDSeekID:   {IDSeekID, KindBinary, "SeekID"},
	IDSeekPos:  {IDSeekPos, KindUint, "SeekPosition"},

	IDInfo:            {IDInfo, KindMaster, "Info"},
	IDSegmentUID:      {IDSegmentUID, KindBinary, "SegmentUID"},
	IDSegmentFilename: {IDSegmentFilename, KindUTF8, "SegmentFilename"},
	IDTimecodeScale:   {IDTimecodeScale, KindUint, "TimecodeScale"},
	IDDuration:        {IDDuration, KindFloat, "Duration"},
	IDDateUTC:         {IDDateUTC, KindDate, "DateUTC"},
	IDTitle:           {IDTitle, KindUTF8, "Title"},
	IDMuxingApp:       {IDMuxingApp, KindUTF8, "MuxingApp"},
	IDWritingApp:      {IDWritingApp, KindUTF8, "WritingApp"},

	IDCluster:     {IDCluster, KindMaster, "Cluster"},
	IDTimecode:    {IDTimecode, KindUint, "Timecode"},
	IDSimpleBlock: {IDSimpleBlock, KindBinary, "SimpleBlock"},
	IDBlockGroup:  {IDBlockGroup, KindMaster, "BlockGroup"},
	IDBlock:       {IDBlock, KindBinary, "Block"},

	IDTracks:       {IDTracks, KindMaster, "Tracks"},
	IDTrackEntry:   {IDTrackEntry, KindMaster, "TrackEntry"},
	IDTrackNumber:  {IDTrackNumber, KindUint, "TrackNumber"},
	IDTrackUID:     {IDTrackUID, KindUint, "TrackUID"},
	IDTrackType:    {IDTrackType, KindUint, "TrackType"},
	IDCodecID:      {IDCodecID, KindString, "CodecID"},
	IDCodecPrivate: {IDCodecPrivate, KindBinary, "CodecPrivate"},

	IDCues:              {IDCues, KindMaster, "Cues"},
	IDCuePoint:          {IDCuePoint, KindMaster, "CuePoint"},
	IDCueTime:           {IDCueTime, KindUint, "CueTime"},
	IDCueTrackPositions: {IDCueTrackPositions, KindMaster, "CueTrackPositions"},

	IDAttachments:     {IDAttachments, KindMaster, "Attachments"},
	IDAttachedFile:    {IDAttachedFile, KindMaster, "AttachedFile"},
	IDFileDescription: {IDFileDescription, KindUTF8, "FileDescription"},
	IDFileName:        {IDFileName, KindUTF8, "FileName"},
	IDFileMimeType:    {IDFileMimeType, KindString, "FileMimeType"},
	IDFileData:        {IDFileData, KindBinary, "FileData"},
	IDFileUID:         {IDFileUID, KindUint, "FileUID"},

	IDChapters:         {IDChapters, KindMaster, "Chapters"},
	IDEditionEntry:     {IDEditionEntry, KindMaster, "EditionEntry"},
	IDEditionUID:       {IDEditionUID, KindUint, "EditionUID"},
	IDChapterAtom:      {IDChapterAtom, KindMaster, "ChapterAtom"},
	IDChapterUID:       {IDChapterUID, KindUint, "ChapterUID"},
	IDChapterTimeStart: {IDChapterTimeStart, KindUint, "ChapterTimeStart"},
	IDChapterTimeEnd:   {IDChapterTimeEnd, KindUint, "ChapterTimeEnd"},
	IDChapterDisplay:   {IDChapterDisplay, KindMaster, "ChapterDisplay"},
	IDChapString:       {IDChapString, KindUTF8, "ChapString"},
	IDChapLanguage:     {IDChapLanguage, KindString, "ChapLanguage"},

	IDTags:             {IDTags, KindMaster, "Tags"},
	IDTag:              {IDTag, KindMaster, "Tag"},
	IDTargets:          {IDTargets, KindMaster, "Targets"},
	IDTargetTypeValue:  {IDTargetTypeValue, KindUint, "TargetTypeValue"},
	IDTargetType:       {IDTargetType, KindString, "TargetType"},
	IDTagTrackUID:      {IDTagTrackUID, KindUint, "TagTrackUID"},
	IDTagEditionUID:    {IDTagEditionUID, KindUint, "TagEditionUID"},
	IDTagChapterUID:    {IDTagChapterUID, KindUint, "TagChapterUID"},
	IDTagAttachmentUID: {IDTagAttachmentUID, KindUint, "TagAttachmentUID"},
	IDSimpleTag:        {IDSimpleTag, KindMaster, "SimpleTag"},
	IDTagName:          {IDTagName, KindUTF8, "TagName"},
	IDTagLanguage:      {IDTagLanguage, KindString, "TagLanguage"},
	IDTagLanguageBCP47: {IDTagLanguageBCP47, KindString, "TagLanguageBCP47"},
	IDTagDefault:       {IDTagDefault, KindUint, "TagDefault"},
	IDTagString:        {IDTagString, KindUTF8, "TagString"},
	IDTagBinary:        {IDTagBinary, KindBinary, "TagBinary"},
}

// Lookup returns the registered Kind/Name for id, or an Unknown/Binary
// fallback so unrecognized elements can still be framed and skipped.
func Lookup(id uint32) Registry {
	if r, ok := registry[id]; ok {
		return r
	}
	return Registry{ID: id, Kind: KindBinary, Name: "Unknown"}
}

// IsMaster reports whether id is a known master (container) element.
func IsMaster(id uint32) bool {
	r, ok := registry[id]
	return ok && r.Kind == KindMaster
}

// IDSize returns the number of bytes needed to encode a raw element ID.
// IDs retain their VINT marker bits, so this is simply the byte width
// of the raw value.
func IDSize(id uint32) int {
	switch {
	case id <= 0xFF:
		return 1
	case id <= 0xFFFF:
		return 2
	case id <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}
