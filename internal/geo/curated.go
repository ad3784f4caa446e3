package geo

import "github.com/admpjgj/yxip/internal/model"

// CuratedRules is the hand-maintained coarse range table for the three
// target regions, covering the major cloud and carrier allocations.
// Declaration order is the match priority.
func CuratedRules() []OctetRule {
	hk := model.RegionHongKong
	jp := model.RegionJapan
	sg := model.RegionSingapore
	return []OctetRule{
		// Hong Kong: Tencent/Alibaba cloud, local carriers and IDC
		{152, 70, 0, 255, hk},
		{47, 245, 0, 255, hk},
		{47, 57, 128, 255, hk},
		{47, 74, 128, 255, hk},
		{203, 118, 0, 255, hk},
		{202, 175, 0, 255, hk},
		{58, 18, 0, 255, hk},
		{103, 20, 0, 255, hk},
		{119, 93, 0, 255, hk},
		{118, 143, 0, 255, hk},
		{203, 198, 0, 255, hk},
		{103, 52, 74, 75, hk},
		{59, 148, 0, 3, hk},
		{59, 149, 0, 255, hk},
		{59, 150, 0, 255, hk},
		{59, 151, 0, 255, hk},
		{183, 83, 0, 255, hk},
		{27, 124, 0, 255, hk},

		// Japan: AWS/Alibaba Tokyo, NTT, KDDI, SoftBank, Rakuten
		{52, 192, 0, 255, jp},
		{54, 238, 0, 255, jp},
		{47, 92, 0, 255, jp},
		{47, 251, 0, 255, jp},
		{202, 21, 0, 255, jp},
		{202, 248, 0, 255, jp},
		{104, 193, 0, 255, jp},
		{133, 18, 0, 255, jp},
		{43, 0, 0, 255, jp},
		{43, 1, 0, 255, jp},
		{43, 2, 0, 255, jp},
		{43, 3, 0, 255, jp},
		{106, 0, 0, 255, jp},
		{106, 1, 0, 255, jp},
		{180, 87, 0, 255, jp},
		{180, 88, 0, 255, jp},
		{59, 106, 0, 255, jp},
		{59, 107, 0, 255, jp},
		{153, 120, 0, 255, jp},
		{153, 121, 0, 255, jp},
		{210, 152, 0, 255, jp},
		{210, 153, 0, 255, jp},

		// Singapore: Alibaba/AWS, Singtel, M1, StarHub, DigitalOcean
		{47, 88, 0, 255, sg},
		{47, 254, 0, 255, sg},
		{52, 74, 0, 255, sg},
		{52, 197, 0, 255, sg},
		{202, 153, 0, 255, sg},
		{203, 116, 0, 255, sg},
		{103, 3, 0, 255, sg},
		{139, 162, 0, 255, sg},
		{1, 21, 224, 255, sg},
		{1, 32, 128, 191, sg},
		{1, 32, 192, 255, sg},
		{1, 178, 32, 63, sg},
		{8, 128, 0, 255, sg},
		{8, 129, 0, 255, sg},
		{8, 130, 0, 255, sg},
		{8, 131, 0, 255, sg},
		{103, 214, 0, 255, sg},
		{188, 166, 0, 255, sg},
		{202, 92, 128, 255, sg},
	}
}
