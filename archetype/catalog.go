package archetype

import (
	"fmt"
	"sort"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
)

// Catalog is a read-only set of archetypes keyed by emotion name.
type Catalog struct {
	index map[string]Archetype
}

// Default returns the built-in v3.0 catalog.
func Default() *Catalog {
	return &Catalog{index: index}
}

// Has reports whether the catalog knows the emotion.
func (c *Catalog) Has(emotion string) bool {
	_, ok := c.index[emotion]
	return ok
}

// Len returns the number of archetypes.
func (c *Catalog) Len() int { return len(c.index) }

// Emotions returns the archetype names in sorted order.
func (c *Catalog) Emotions() []string {
	names := make([]string, 0, len(c.index))
	for name := range c.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Archetype returns the full archetype for an emotion.
func (c *Catalog) Archetype(emotion string) (Archetype, error) {
	a, ok := c.index[emotion]
	if !ok {
		return Archetype{}, fmt.Errorf("pipeline: emotion %q: %w", emotion, pipeline.ErrValidation)
	}
	return a, nil
}

// Profile resolves one emotion at one intensity. Unknown emotions and
// intensities are rejected rather than falling back to a default archetype.
func (c *Catalog) Profile(emotion string, intensity Intensity) (Profile, error) {
	a, err := c.Archetype(emotion)
	if err != nil {
		return Profile{}, err
	}
	cam, ok := a.Camera[intensity]
	if !ok {
		return Profile{}, fmt.Errorf("pipeline: intensity %q: %w", intensity, pipeline.ErrValidation)
	}
	return Profile{
		Emotion:     emotion,
		Intensity:   intensity,
		Description: a.Description,
		Camera:      cam,
		Color:       a.Color[intensity],
		VFX:         a.VFX[intensity],
		FFmpeg:      a.FFmpeg,
	}, nil
}

// index is the v3.0 emotional index: the seven v2.0 archetypes plus
// romance, joy, nostalgia, rage, and serenity.
var index = map[string]Archetype{
	"curiosity": {
		Name:        "curiosity",
		Description: "Viewer investigating unknown",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "slow_zoom_in", Angle: "eye_level", Speed: 0.3, FocalLength: 35},
			Medium: {Movement: "dolly_forward", Angle: "slightly_low", Speed: 0.5, FocalLength: 50},
			Heavy:  {Movement: "push_in_dramatic", Angle: "dutch_tilt_15deg", Speed: 0.8, FocalLength: 85},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "neutral_cool", Saturation: -5, Contrast: 1.05, Vignette: 0.1},
			Medium: {Grade: "mystery_teal", Saturation: -10, Contrast: 1.15, Vignette: 0.3},
			Heavy:  {Grade: "noir_blue", Saturation: -20, Contrast: 1.35, Vignette: 0.5},
		},
		VFX: map[Intensity][]string{
			Light:  {"subtle_glow_edges"},
			Medium: {"light_rays", "dust_particles"},
			Heavy:  {"lens_flare_mystery", "depth_fog", "chromatic_aberration"},
		},
		FFmpeg: "zoompan=z='min(zoom+0.0015,1.5)':d=900,eq=saturation=0.9:contrast=1.15",
	},

	"fear": {
		Name:        "fear",
		Description: "Viewer anticipating threat",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "handheld_slight_shake", Angle: "slightly_low", Speed: 0.6, FocalLength: 24},
			Medium: {Movement: "dutch_angle_creep", Angle: "tilted_20deg", Speed: 0.4, FocalLength: 35},
			Heavy:  {Movement: "erratic_handheld", Angle: "extreme_dutch_45deg", Speed: 1.0, FocalLength: 18},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "slightly_desaturated", Saturation: -10, Contrast: 1.10},
			Medium: {Grade: "cold_blue_shadows", Saturation: -20, Contrast: 1.25, Vignette: 0.4},
			Heavy:  {Grade: "horror_green_tint", Saturation: -30, Contrast: 1.5, Vignette: 0.7},
		},
		VFX: map[Intensity][]string{
			Light:  {"vignette_crawl"},
			Medium: {"shadow_flicker", "screen_glitch"},
			Heavy:  {"chromatic_shift", "distortion_waves", "static_burst"},
		},
		FFmpeg: "transform='sin(2*PI*t*1.5)*5',eq=saturation=0.7:contrast=1.5,noise=alls=20:allf=t",
	},

	"triumph": {
		Name:        "triumph",
		Description: "Viewer experiencing victory",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "slow_rise", Angle: "slightly_low", Speed: 0.5, FocalLength: 50},
			Medium: {Movement: "crane_up_hero", Angle: "low_angle_power", Speed: 0.7, FocalLength: 35},
			Heavy:  {Movement: "drone_orbit_ascend", Angle: "low_heroic", Speed: 1.0, FocalLength: 24},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "warm_lift", Saturation: 10, Contrast: 1.05},
			Medium: {Grade: "golden_hour", Saturation: 20, Contrast: 1.15, Bloom: 0.2},
			Heavy:  {Grade: "epic_teal_orange", Saturation: 35, Contrast: 1.30, Bloom: 0.4},
		},
		VFX: map[Intensity][]string{
			Light:  {"soft_glow"},
			Medium: {"light_rays_strong", "particle_sparkle"},
			Heavy:  {"epic_lens_flare", "light_streak", "particle_explosion"},
		},
		FFmpeg: "zoompan=z='1':y='max(ih-ih/zoom,0-t*40)':d=900,eq=saturation=1.35:contrast=1.3,flare=0.5:0.5:2.0",
	},

	"tension": {
		Name:        "tension",
		Description: "Viewer on edge, awaiting resolution",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "static_locked", Angle: "eye_level_tight", Speed: 0.0, FocalLength: 85},
			Medium: {Movement: "micro_shake_anticipation", Angle: "close_up", Speed: 0.2, FocalLength: 100},
			Heavy:  {Movement: "zoom_in_aggressive", Angle: "extreme_close_up", Speed: 1.5, FocalLength: 135},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "neutral_sharp", Saturation: 0, Contrast: 1.15},
			Medium: {Grade: "high_contrast_cold", Saturation: -15, Contrast: 1.35},
			Heavy:  {Grade: "stark_black_white", Saturation: -50, Contrast: 1.6, Vignette: 0.6},
		},
		VFX: map[Intensity][]string{
			Light:  {"frame_jitter"},
			Medium: {"time_remap_subtle", "sound_visualizer"},
			Heavy:  {"strobe_flash", "frame_skip", "reverse_time_glitch"},
		},
		FFmpeg: "zoompan=z='min(zoom+0.003,2.0)':d=900,eq=saturation=0.5:contrast=1.6,vignette='PI/4*0.6'",
	},

	"wonder": {
		Name:        "wonder",
		Description: "Viewer experiencing awe",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "slow_pan_reveal", Angle: "eye_level_wide", Speed: 0.3, FocalLength: 24},
			Medium: {Movement: "crane_rise_majestic", Angle: "ascending", Speed: 0.5, FocalLength: 35},
			Heavy:  {Movement: "orbital_360_slow", Angle: "god_view_high", Speed: 0.7, FocalLength: 16},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "pastel_dream", Saturation: 15, Contrast: 0.95},
			Medium: {Grade: "ethereal_glow", Saturation: 25, Contrast: 0.90, Bloom: 0.3},
			Heavy:  {Grade: "magic_hour_amplified", Saturation: 40, Contrast: 0.85, Bloom: 0.6},
		},
		VFX: map[Intensity][]string{
			Light:  {"soft_bokeh"},
			Medium: {"particle_float", "light_beams_soft"},
			Heavy:  {"god_rays_volumetric", "particle_galaxy", "lens_orbs"},
		},
		FFmpeg: "eq=saturation=1.4:contrast=0.85:brightness=0.08,gblur=sigma=7:steps=4,flare=0.4:0.4:1.8",
	},

	"urgency": {
		Name:        "urgency",
		Description: "Viewer feeling time pressure",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "quick_cuts_static", Angle: "varying_rapid", Speed: 2.0, FocalLength: 50},
			Medium: {Movement: "chase_cam_forward", Angle: "pov_handheld", Speed: 3.0, FocalLength: 28},
			// Zero focal length means the treatment varies it per shot.
			Heavy: {Movement: "frenetic_multi_angle", Angle: "extreme_pov", Speed: 5.0, FocalLength: 0},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "high_contrast_warm", Saturation: 5, Contrast: 1.20},
			Medium: {Grade: "action_orange_crush", Saturation: 15, Contrast: 1.40},
			Heavy:  {Grade: "explosive_color_pop", Saturation: 30, Contrast: 1.60},
		},
		VFX: map[Intensity][]string{
			Light:  {"speed_lines"},
			Medium: {"motion_trails", "frame_blending"},
			Heavy:  {"strobe_cuts", "whip_transitions", "zoom_blur"},
		},
		FFmpeg: "eq=saturation=1.3:contrast=1.6,minterpolate='fps=120:mi_mode=mci',zoompan=z='if(eq(on,1),1.5,zoom-0.01)':d=1",
	},

	"melancholy": {
		Name:        "melancholy",
		Description: "Viewer experiencing sadness/loss",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "slow_dolly_back", Angle: "eye_level_distant", Speed: 0.2, FocalLength: 50},
			Medium: {Movement: "crane_descend_slow", Angle: "high_looking_down", Speed: 0.3, FocalLength: 85},
			Heavy:  {Movement: "static_hold_long", Angle: "isolated_wide", Speed: 0.0, FocalLength: 24},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "muted_cool", Saturation: -10, Contrast: 0.95},
			Medium: {Grade: "desaturated_blue", Saturation: -25, Contrast: 0.85, Vignette: 0.3},
			Heavy:  {Grade: "monochrome_blue_tint", Saturation: -40, Contrast: 0.75, Vignette: 0.6},
		},
		VFX: map[Intensity][]string{
			Light:  {"rain_overlay_light"},
			Medium: {"rain_medium", "window_droplets"},
			Heavy:  {"heavy_rain", "fog_dense", "chromatic_aberration_subtle"},
		},
		FFmpeg: "eq=saturation=0.6:contrast=0.75,colorchannelmixer=rr=0.3:rg=0.3:rb=0.4:gr=0.3:gg=0.3:gb=0.4:br=0.3:bg=0.3:bb=0.4,vignette='PI/4*0.6'",
	},

	"romance": {
		Name:        "romance",
		Description: "Intimacy and affection (Tame/Hollywood Safe)",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "static_two_shot", Angle: "eye_level", Speed: 0.0, FocalLength: 50},
			Medium: {Movement: "slow_dolly_in", Angle: "shoulder_level", Speed: 0.2, FocalLength: 85},
			Heavy:  {Movement: "orbit_slow_close", Angle: "eye_level_tight", Speed: 0.3, FocalLength: 100},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "warm_soft", Saturation: 10, Contrast: 1.0, Bloom: 0.1},
			Medium: {Grade: "golden_glow", Saturation: 15, Contrast: 1.1, Vignette: 0.2},
			Heavy:  {Grade: "deep_passion", Saturation: 20, Contrast: 1.2, Extra: map[string]float64{"blur_edges": 1}},
		},
		VFX: map[Intensity][]string{
			Light:  {"soft_glow_subtle"},
			Medium: {"bokeh_particles", "light_leak_warm"},
			Heavy:  {"dreamy_haze", "heartbeat_vignette"},
		},
		FFmpeg: "eq=saturation=1.2:contrast=1.1,gblur=sigma=2:steps=1,vignette='PI/4*0.2'",
	},

	"joy": {
		Name:        "joy",
		Description: "Happiness, humor, and comedy",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "static_wide", Angle: "eye_level", Speed: 0.0, FocalLength: 35},
			Medium: {Movement: "whip_pan_reveal", Angle: "slightly_low", Speed: 1.5, FocalLength: 24},
			Heavy:  {Movement: "snap_zoom_funny", Angle: "high_angle_exaggerated", Speed: 3.0, FocalLength: 18},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "bright_natural", Saturation: 5, Contrast: 1.0, Brightness: 0.05},
			Medium: {Grade: "vibrant_pop", Saturation: 20, Contrast: 1.1, Brightness: 0.1},
			Heavy:  {Grade: "candy_crush", Saturation: 35, Contrast: 1.2, Gamma: 1.1},
		},
		VFX: map[Intensity][]string{
			Light:  {"clean_sharp"},
			Medium: {"confetti_subtle", "lens_flare_bright"},
			Heavy:  {"speed_lines_comic", "star_burst"},
		},
		FFmpeg: "eq=brightness=0.1:saturation=1.3:contrast=1.1",
	},

	"nostalgia": {
		Name:        "nostalgia",
		Description: "Sentimental memories and flashbacks",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "handheld_gentle", Angle: "eye_level", Speed: 0.4, FocalLength: 50},
			Medium: {Movement: "slow_pan_drift", Angle: "varying", Speed: 0.3, FocalLength: 35},
			Heavy:  {Movement: "floating_cam", Angle: "subjective_pov", Speed: 0.2, FocalLength: 28},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "sepia_tint_light", Saturation: -10, Contrast: 0.95, Warmth: 0.1},
			Medium: {Grade: "faded_film", Saturation: -25, Contrast: 0.9, Grain: 0.2},
			Heavy:  {Grade: "memory_lane", Saturation: -40, Contrast: 0.85, Grain: 0.4, Extra: map[string]float64{"blur": 0.1}},
		},
		VFX: map[Intensity][]string{
			Light:  {"dust_motes"},
			Medium: {"film_grain_16mm", "vignette_soft"},
			Heavy:  {"film_burn", "projector_flicker", "heavy_grain"},
		},
		FFmpeg: "colorchannelmixer=.393:.769:.189:0:.349:.686:.168:0:.272:.534:.131,noise=alls=20:allf=t,vignette='PI/4*0.4'",
	},

	"rage": {
		Name:        "rage",
		Description: "Anger, fury, and revenge",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "static_tense", Angle: "eye_level", Speed: 0.0, FocalLength: 50},
			Medium: {Movement: "shaky_cam_build", Angle: "low_angle", Speed: 1.0, FocalLength: 35},
			Heavy:  {Movement: "erratic_chaos", Angle: "dutch_extreme", Speed: 4.0, FocalLength: 24},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "cold_steel", Saturation: -10, Contrast: 1.2},
			Medium: {Grade: "simmering_heat", Saturation: 0, Contrast: 1.4, Extra: map[string]float64{"red_tint": 0.1}},
			Heavy:  {Grade: "seeing_red", Saturation: 20, Contrast: 1.7, Extra: map[string]float64{"red_crush": 0.3}},
		},
		VFX: map[Intensity][]string{
			Light:  {"heat_haze_subtle"},
			Medium: {"camera_shake_impact", "distortion_edges"},
			Heavy:  {"chromatic_aberration_strong", "red_flash", "screen_tear"},
		},
		FFmpeg: "colorbalance=rs=0.2:rm=0.2:rh=0.2,eq=contrast=1.5:saturation=1.2,transform='sin(2*PI*t*10)*5'",
	},

	"serenity": {
		Name:        "serenity",
		Description: "Calm, peace, and nature",
		Camera: map[Intensity]Camera{
			Light:  {Movement: "static_locked", Angle: "eye_level", Speed: 0.0, FocalLength: 35},
			Medium: {Movement: "slow_pan_landscape", Angle: "wide_angle", Speed: 0.1, FocalLength: 24},
			Heavy:  {Movement: "drone_hover", Angle: "god_view", Speed: 0.05, FocalLength: 16},
		},
		Color: map[Intensity]Color{
			Light:  {Grade: "natural_balanced", Saturation: 0, Contrast: 1.0},
			Medium: {Grade: "cool_breeze", Saturation: 5, Contrast: 0.95, Extra: map[string]float64{"blue_tint": 0.05}},
			Heavy:  {Grade: "zen_garden", Saturation: 10, Contrast: 0.9, Extra: map[string]float64{"diffusion": 0.2}},
		},
		VFX: map[Intensity][]string{
			Light:  {"clean_frame"},
			Medium: {"mist_layer", "slow_particles"},
			Heavy:  {"god_rays_subtle", "water_shimmer"},
		},
		FFmpeg: "eq=contrast=0.95:saturation=1.1,colorbalance=bs=0.1",
	},
}
