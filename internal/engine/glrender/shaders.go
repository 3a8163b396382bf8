package glrender

// GLSL sources. Uniform names match the gpu.Prop* identifiers.

const meshVertexSrc = `#version 410 core
in vec3 aPosition;
in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vWorldPos;
out vec3 vNormal;
out float vDepth;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vec4 view = uView * world;
    vWorldPos = world.xyz;
    vNormal = mat3(uModel) * aNormal;
    vDepth = -view.z;
    gl_Position = uProjection * view;
}
`

const litFragmentSrc = `#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in float vDepth;

uniform vec4 uColor;

uniform vec4 _WorldSpaceLightPos0;
uniform vec4 unity_LightColor0;

uniform sampler2DShadow _DirectionalShadowMap;
uniform mat4 _DirectionalShadowMatrices[4];
uniform float _DirectionalShadowStrength;
uniform int _CascadeCount;
uniform vec4 _CascadeCullingSpheres[4];
uniform float _CascadeData[4];
uniform vec4 _ShadowDistanceFade;

out vec4 fragColor;

float fadedStrength(float distance, float scale, float fade) {
    return clamp((1.0 - distance * scale) * fade, 0.0, 1.0);
}

float shadowAttenuation(vec3 worldPos, float depth) {
    if (_CascadeCount == 0) {
        return 1.0;
    }
    float strength = fadedStrength(depth, _ShadowDistanceFade.x, _ShadowDistanceFade.y);
    int cascade = _CascadeCount;
    for (int i = 0; i < _CascadeCount; i++) {
        vec3 d = worldPos - _CascadeCullingSpheres[i].xyz;
        float d2 = dot(d, d);
        if (d2 < _CascadeCullingSpheres[i].w) {
            if (i == _CascadeCount - 1) {
                strength *= fadedStrength(d2, _CascadeData[i], _ShadowDistanceFade.z);
            }
            cascade = i;
            break;
        }
    }
    if (cascade == _CascadeCount) {
        return 1.0;
    }
    vec4 p = _DirectionalShadowMatrices[cascade] * vec4(worldPos, 1.0);
    float lit = texture(_DirectionalShadowMap, p.xyz / p.w);
    return mix(1.0, lit, strength * _DirectionalShadowStrength);
}

void main() {
    vec3 n = normalize(vNormal);
    float ndotl = max(dot(n, _WorldSpaceLightPos0.xyz), 0.0);
    float atten = shadowAttenuation(vWorldPos, vDepth);
    vec3 ambient = uColor.rgb * 0.1;
    fragColor = vec4(ambient + uColor.rgb * unity_LightColor0.rgb * ndotl * atten, uColor.a);
}
`

const unlitFragmentSrc = `#version 410 core
uniform vec4 uColor;
out vec4 fragColor;

void main() {
    fragColor = uColor;
}
`

const shadowCasterFragmentSrc = `#version 410 core
void main() {
}
`

const skyVertexSrc = `#version 410 core
out float vHeight;

void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2) * 2.0 - 1.0;
    vHeight = pos.y * 0.5 + 0.5;
    gl_Position = vec4(pos, 1.0, 1.0);
}
`

const skyFragmentSrc = `#version 410 core
in float vHeight;
uniform vec4 uHorizon;
uniform vec4 uZenith;
out vec4 fragColor;

void main() {
    fragColor = mix(uHorizon, uZenith, clamp(vHeight, 0.0, 1.0));
}
`

const lineVertexSrc = `#version 410 core
in vec3 aPosition;
uniform mat4 uViewProjection;

void main() {
    gl_Position = uViewProjection * vec4(aPosition, 1.0);
}
`
